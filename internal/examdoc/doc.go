// Package examdoc parses, validates and repairs exam documents written in the
// question markup grammar.
//
// A document is a sequence of blocks. Each block starts with a header line
// naming its kind and ends at the next header:
//
//	## SingleChoice
//
//	1+1=?
//
//	- (x) 2
//	- ( ) 3
//
// Headers may use the English labels (SingleChoice, MultipleChoice,
// FillBlank) or the Chinese labels (单选题, 多选题, 填空题), optionally
// followed by a numeral. A single leading "# Title" line is ignored.
//
// Option and answer lines use canonical markers:
//
//	- (x) / - ( )   single choice, exactly one correct option
//	- [x] / - [ ]   multiple choice, at least one correct option
//	- R:=           fill blank answer, at least one
//
// Validate checks every block and, when any block fails, performs one repair
// pass: headers are discarded, markers are normalized, blocks are
// reclassified from their markers and canonical headers are re-inserted.
// The returned Result always reflects the outcome after the repair attempt.
package examdoc
