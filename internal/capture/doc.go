// Package capture implements the quick capture actions: tasks, daily
// journal entries, info dumps from typed text or the clipboard, ad-hoc
// meeting notes, and opening the home page.
//
// Each action has a query mode method returning a launcher.Item and an
// action method that writes to the document store.
package capture
