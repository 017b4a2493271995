// Package stepfile reads precedence definitions from disk or a stream.
//
// Two formats are supported. The text format has one constraint per line:
//
//	Step C must be finished before step A can begin.
//
// Blank lines and lines starting with '#' are skipped. Labels are any run of
// non-space characters.
//
// The YAML plan format declares steps explicitly and may carry run settings
// and per-step durations:
//
//	workers: 2
//	time_offset: 0
//	steps:
//	  - id: C
//	  - id: A
//	    depends_on: [C]
//	    duration: 4
//
// Either way the result is a [Stepfile] whose Graph method builds the
// precedence graph. Lines that cannot be read are reported as
// *errors.MalformedEdgeError with their line number.
package stepfile
