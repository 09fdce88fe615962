package engine

// CommandError is returned by a command's argument validation, mirroring
// the teacher's *cmd.CommandError: a typed error that carries exactly the
// detail string the wire protocol is contractually obligated to send back
// (spec.md §7), nothing more.
type CommandError struct {
	Detail string
}

func (e *CommandError) Error() string { return e.Detail }

func errf(detail string) error { return &CommandError{Detail: detail} }
