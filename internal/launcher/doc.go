// Package launcher renders output for a keyboard launcher.
//
// Commands run in two modes. Query mode prints one line of script filter
// JSON ({"items":[...]}) describing what pressing Enter will do. Action
// mode performs the change and prints ✅ or ❌ status lines. Failures are
// reported in the output, never through the exit code.
package launcher
