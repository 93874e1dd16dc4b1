// Package textutil provides small string helpers shared by the engine command
// builder and the job supervisor: filesystem-safe names and bounded log lines.
package textutil
