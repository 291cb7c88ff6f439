// Package validation checks the construction arguments of genflow sources
// and operators: window widths, steps, counts, page sizes, Redis clients and
// keys, cron expressions.
//
// Every check returns nil or a *errors.ValidationError naming the module and
// the offending field, so callers either return it (constructors that report
// errors) or panic with it (operators whose arguments are programmer
// errors).
package validation
