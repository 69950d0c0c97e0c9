// Package artwork repairs missing or stale posters and backgrounds across a
// library section. Artwork a human has locked on the server is never
// touched, and a failure on one item never aborts the scan.
package artwork
