// Package quizforge generates exam documents with a text-generation service.
//
// A request (subject, grade, question count, difficulty, question types,
// topics and optional reference material) is turned into a content plan of
// question specs. The specs are generated in parallel against the service,
// each one through a fingerprint cache and a retrying invoker, and the
// resulting blocks are assembled into one document that is validated against
// a small block grammar, repaired once if needed, and rendered.
//
// # Components
//
//   - Fingerprint cache: content-addressed, TTL-bounded cache of generated
//     blocks, backed by files, SQLite, Postgres, Redis, MongoDB or memory.
//   - Retrying invoker: bounded retries with throttle-aware backoff.
//   - Parallel dispatcher: at most three generation calls in flight, results
//     in submission order, placeholders for items that fail for good.
//   - Workflow tracker: records every request as a workflow of steps and tool
//     calls and derives evaluation reports from them.
//   - Document validator: checks SingleChoice, MultipleChoice and FillBlank
//     blocks and repairs malformed documents.
//
// # LocalRunner
//
// LocalRunner wires all of the above around a Generator in a single process:
//
//	runner, err := quizforge.NewLocalRunner(gen, quizforge.LocalOptions{})
//	out, err := runner.Run(ctx, map[string]any{
//	    "subject": "math",
//	    "count":   5,
//	    "types":   "singleChoice,fillBlank",
//	})
//	fmt.Println(out.Render.URL)
//
// The quizforge command (cmd/quizforge) serves the same pipeline over HTTP
// with configurable storage, generation provider and renderer.
//
// For examples, see the /examples directory.
package quizforge
