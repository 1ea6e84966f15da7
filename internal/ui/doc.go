// Package ui implements an interactive terminal dashboard for the catalog migration using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [DashboardView] : Migration stats and the available actions
//  2. [ConfirmView] : Confirm a live (non dry run) migration
//  3. [RunningView] : Spinner with real-time progress updates
//  4. [ResultView] : Per-migration counts, warnings and errors
//  5. [ReportView] : Verification checks as a browsable list
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the migration engine, providing non-blocking status reporting during runs.
//
// Keyboard bindings (d, m, v, r, esc, y/n, q) are displayed contextually with charmbracelet/bubbles/help.
package ui
