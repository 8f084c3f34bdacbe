// Package registry persists the fleet's placement metadata.
//
// The registry is one JSON document mapping instance names to records:
//
//	{
//	  "revision": 7,
//	  "instances": {
//	    "alpha": {"port": 18789, "created": "2026-08-21T09:14:02Z"},
//	    "beta":  {"port": 18790, "created": "2026-08-22T11:40:55Z",
//	              "ssh_host": "bots.example.net", "ssh_user": "ops"}
//	  }
//	}
//
// It is the single source of truth for placement and survives process
// restarts. It never stores live run state; that is re-derived from the
// container engine on every query.
//
// Writes are atomic (temp file + rename) and guarded by the revision counter:
// a mutation whose base revision has been overtaken by a concurrent writer
// fails with a conflict error instead of losing the other writer's update.
package registry
