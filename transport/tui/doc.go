// Package tui is a terminal client for the coin cache game built on
// bubbletea.
//
// The screen shows the neighborhood around the player with north up:
//
//	@  player
//	*  cache with coins
//	o  empty cache
//	.  no cache
//
// Keys: arrows move, tab cycles the caches in range, c collects the first
// coin of the selected cache, d deposits into it, s saves a snapshot, u
// undoes, r resets and q quits. Every action goes through
// service.GameService, so sessions played here are persisted like any other.
package tui
