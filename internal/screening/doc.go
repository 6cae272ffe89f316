// Package screening narrows a dividend table down to investable candidates.
//
// A Pipeline applies stages in order; each stage receives the previous
// stage's output and returns a new table, leaving its input untouched.
// The reference chain is YieldScreen, PayoutScreen, GrowthScreen.
package screening
