// Command console wires the EcomBuddha console core together: config,
// logging, the bbolt session store, the session manager, the API gateway
// client, and the dashboard refresh poller. The UI layer in front of it
// consumes the same packages; this binary is the headless reference
// wiring.
package main
