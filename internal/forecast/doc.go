// Package forecast projects dividend income and savings-instrument growth
// day by day.
//
// Simulate models a dividend stock bought with a fixed capital: payouts
// arrive CapitalizationsPerYear times a year and are taxed, while share
// price and dividend grow once a year. The low-risk functions model
// interest-bearing instruments compounded daily, monthly or annually.
//
// Every run is deterministic and returns freshly allocated series.
package forecast
