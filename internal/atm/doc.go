// Package atm fetches cash machines from the bank's clusters API and prepares them for display.
//
// The clusters endpoint groups nearby machines into clusters; Client flattens
// them into a single list and keeps only the withdrawal limits for the
// requested currencies. Enrich attaches distances to configured points of
// interest and Sort orders the list for rendering: highest first-currency
// limit first, nearest point of interest as the tie-break.
package atm
