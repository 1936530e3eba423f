// Package ui styles the terminal output of the sync and inspection commands.
//
// Each per-item line carries a marker so the output stays readable without color:
//
//	[+] created   [.] updated   [!] failed   [-] skipped
package ui
