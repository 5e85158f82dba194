/*
Package watcher is the hot folder engine: it detects that a file has
finished arriving, decides whether to fire per-file or batched triggers, and
chains pipeline steps by rewiring watch and output folders.

	  filesystem event
	        |
	        v
	  +-----------+      +-----------+
	  | Observer  |----->|  Handler  |  (one per watched folder)
	  | dispatch  |      +-----+-----+
	  +-----------+            |
	                    wait until stable
	                           |
	              +------------+------------+
	              |                         |
	        single trigger            pending set
	              |                         |
	              v                  debounce loop
	        +-----------+                   |
	        | Executor  |<------------------+
	        +-----+-----+
	              |
	              v
	  output folder (possibly the next step's watched folder)

🎯 Purpose:
- Routes create/modify events to the folder's handler
- Waits for a file's size to settle before acting on it
- Batches multi-file triggers until the whole set is quiescent
- Wires pipeline steps so each step's output lands in the next step's watch

🔄 Flow:
1. Registrar creates the folder hierarchy and schedules handlers
2. Observer dispatches events, one goroutine per accepted event
3. Handler settles the file, then executes or batches it
4. Observer optionally replays pre-existing files and cleans up on exit

Every per-file and per-trigger error is contained and logged; nothing that
happens to one file can stop the watch or affect another environment.
*/
package watcher
