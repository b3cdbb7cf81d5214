// Package preflight provides readiness checks for the filesystem paths and
// external tools automix depends on.
//
// These checks run in two contexts:
//   - The render command calls RunAll before probing any clip. If a check
//     fails the run stops before any intermediate is written.
//   - The CLI "automix check" command uses RunAll and CheckSystemDeps to
//     display the full readiness table.
package preflight
