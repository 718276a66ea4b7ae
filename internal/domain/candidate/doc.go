// Package candidate models race participants and the offices they contest.
package candidate
