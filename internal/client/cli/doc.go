// Package cli implements the pinctl commands on top of apiclient.
//
// Commands:
//
//	list [category]                       pins, newest first
//	show <id>                             a pin and its recent visits
//	add <title> <lat> <lng> [category]    create a pin
//	visit <pin-id> <name> [note]          record a visit
//	upload <file>                         upload an image, print its URL
//	stats                                 totals per category
package cli
