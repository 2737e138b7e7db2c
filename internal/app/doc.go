// Package app is the composition root of the xkcd CLI.
//
// # Overview
//
// New builds an App from the loaded configuration: the xkcd HTTP client, the
// Bubble Tea title picker, the external image opener and the terminal prober.
// Every collaborator is an exported field so tests can swap in fakes.
//
// # Commands
//
//   - Show: detect the terminal capability, select a comic (by title, id,
//     latest or random), print the bold title, render the image inline or
//     through the external viewer, then print the alt text.
//   - UpdateCache: refresh the on-disk comic index unconditionally.
//
// # Data Flow
//
//	┌──────────────┐    ┌───────────────┐    ┌──────────────┐
//	│ termcap      │    │ comic.Selector│───▶│ cache.Store  │──▶ /archive/
//	│ Detector     │    └──────┬────────┘    └──────────────┘
//	└──────┬───────┘           │ metadata
//	       │ capability        ▼
//	       │            ┌───────────────┐
//	       └───────────▶│ render        │──▶ stdout or opener
//	                    └───────────────┘
//
// Detection runs before selection so the terminal probe does not interfere
// with the picker's alternate screen.
package app
