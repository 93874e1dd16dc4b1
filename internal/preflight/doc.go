// Package preflight provides readiness checks for the filesystem paths and
// services mediajobs depends on.
//
// The daemon runs RunAll at startup and logs failures without refusing to
// start; the CLI status command renders the same results alongside the tool
// availability report from CheckSystemDeps.
package preflight
