package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/recipeshift/internal/migrate"
	"github.com/desertthunder/recipeshift/internal/verify"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStatsFetched MsgKind = iota
	MsgProgressUpdate
	MsgMigrationComplete
	MsgVerificationComplete
)

type statsFetched struct {
	stats *migrate.Stats
	err   error
}

type verificationComplete struct {
	report *verify.Report
	err    error
}

// statsFetchedMsg is the constructor for [MsgStatsFetched]
func statsFetchedMsg(stats *migrate.Stats, err error) Msg {
	return Msg{kind: MsgStatsFetched, data: statsFetched{stats, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update migrate.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// migrationCompleteMsg is the constructor for [MsgMigrationComplete]
func migrationCompleteMsg(result *migrate.CompleteResult) Msg {
	return Msg{kind: MsgMigrationComplete, data: result}
}

// verificationCompleteMsg is the constructor for [MsgVerificationComplete]
func verificationCompleteMsg(report *verify.Report, err error) Msg {
	return Msg{kind: MsgVerificationComplete, data: verificationComplete{report, err}}
}
