// Package recovery extracts one strict JSON document from free-form text
// produced by a generative model.
//
// Model output is expected to hold a single JSON object but arrives wrapped
// in prose or markdown fences, and the canvasCode field routinely carries
// program source with raw quotes, newlines and control characters. Recovery
// runs an ordered chain of stages, each a pure function from text to a
// [Result] that either accepts the text or hands it to the next stage:
//
//  1. [StripFence]: keep the body of the first fenced block, if any
//  2. [TrimToObject]: slice from the first '{' to the last '}'
//  3. direct parse: accept when the text is already valid JSON
//  4. [EscapeField]: re-escape the canvasCode value span only
//  5. [RepairStructure]: drop trailing commas and stray control characters
//  6. second parse: accept when stages 4 and 5 produced valid JSON
//  7. [ExciseField]: replace the canvasCode value with a placeholder
//
// Stage 7 returns its text without a parse check. The only failure is
// [ErrRecoveryFailed], raised when the input holds no object delimiters at
// all. Validating the recovered document against the design schema is the
// caller's job (see package design).
//
// The package keeps no state and does no I/O; [RecoverWithTrace] exposes the
// stage outcomes for callers that want to log them.
package recovery
