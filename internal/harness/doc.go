// Package harness runs conformance scenarios against the sync engine.
//
// A scenario feeds a list of events through a fresh engine and then checks
// assertions against the per-step trace and the final state snapshot.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	run_id: optional-fixed-run-id
//	events:
//	  - type: session/update-list
//	    sessions: [{tab: 1}]
//	  - type: session/set-devtools-stylesheets
//	    tab: 1
//	    stylesheets: {a.css: "body {}"}
//	assertions:
//	  - type: state
//	    path: sessions.1.stylesheets
//	    equals: []
//	  - type: unchanged
//	    steps: [2]
//	  - type: messages
//	    names: [connecting]
//
// Events use the same record shape as event documents.
//
// # Assertion Types
//
//   - state: looks up a dot path in the final snapshot and compares it with
//     equals, or checks that it is absent
//   - changed: each listed step (0-based event index) produced a new state
//   - unchanged: each listed step returned the identical state
//   - messages: the remote-view message queue holds exactly these names
//
// # Deterministic Testing
//
// Scenarios run with testutil.DeterministicClock and testutil.FixedRunID,
// and journal into an in-memory SQLite store. After the last event the
// journal is replayed and any divergence fails the scenario, so every
// scenario doubles as a determinism check.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/patches.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
