// Package cli provides the interactive drive shell.
//
// It wires configuration, the REST API client, and a REPL that keeps a
// current folder much like a Unix shell. A background watcher pings the
// server and flips the prompt between online and offline.
//
// Key features:
//   - Browse: ls, cd, pwd, find, activity
//   - Folders and files: mkdir, put, puttree, rename, rm, mv, cp, url
//   - Server-side selection and clipboard: select, selall, unselect, sel,
//     copy, cut, clear, paste
//   - retry of a partially applied folder rename
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
