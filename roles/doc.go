// Package roles defines the secret roles of Secret Hitler, the dealing
// rules that fix how many of each role a game has, and the enumeration of
// every role assignment consistent with those rules.
package roles
