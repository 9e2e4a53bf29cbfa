package codegen

// Stage tracks generation progress through the fixed pipeline.
type Stage int

const (
	StageStart Stage = iota
	StageValidated
	StageFunctionBuilt
	StageParametersResolved
	StageMainEmitted
	StageOdefunEmitted
	StageFinalized
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageValidated:
		return "validated"
	case StageFunctionBuilt:
		return "function built"
	case StageParametersResolved:
		return "parameters resolved"
	case StageMainEmitted:
		return "main emitted"
	case StageOdefunEmitted:
		return "odefun emitted"
	case StageFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}
