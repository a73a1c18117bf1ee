// Command tween generates inbetween frames between two drawn anchors,
// records accept/reject feedback, and reports acceptance statistics.
package main
