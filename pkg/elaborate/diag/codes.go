package diag

// Well-known diagnostic codes raised by the elaboration pipeline. Each is
// registered with its severity at init time, the way a production front
// end builds its diagnostic severity table once at startup rather than
// scattering severity checks at every emission site.
const (
	ErrUnknownIdentifier       Code = "UnknownIdentifier"
	ErrAssignmentToConstVar    Code = "AssignmentToConstVar"
	ErrConstEvalHierarchicalName Code = "ConstEvalHierarchicalName"
	ErrRecursiveDefinition     Code = "RecursiveDefinition"
	ErrTypeMismatch            Code = "TypeMismatch"
	ErrInvalidCast             Code = "InvalidCast"
	ErrMultiDrivenNet          Code = "MultiDrivenNet"
	ErrProceduralNetAssignment Code = "ProceduralNetAssignment"
	ErrAutomaticNonBlocking    Code = "AutomaticNonBlocking"
	ErrUnconnectedDriveNet     Code = "UnconnectedDriveNet"
	ErrInstanceDepthExceeded   Code = "InstanceDepthExceeded"
	ErrGenerateStepsExceeded   Code = "GenerateStepsExceeded"
	ErrConstexprDepthExceeded  Code = "ConstexprDepthExceeded"
	ErrConstexprStepsExceeded  Code = "ConstexprStepsExceeded"
	ErrDefParamStepsExceeded   Code = "DefParamStepsExceeded"
	ErrMultipleDefaultClocking Code = "MultipleDefaultClocking"
	ErrMultipleGlobalClocking  Code = "MultipleGlobalClocking"
	ErrMultipleDefaultDisable  Code = "MultipleDefaultDisable"
	WarnUnusedOutOfBlockDecl   Code = "UnusedOutOfBlockDecl"
	WarnUnusedSymbol           Code = "UnusedSymbol"
	ErrCyclicResolution        Code = "CyclicResolution"
	ErrDPIExportConflict       Code = "DPIExportConflict"
	NoteDeclaredHere           Code = "NoteDeclaredHere"
)

func init() {
	RegisterSeverity(ErrUnknownIdentifier, SeverityError)
	RegisterSeverity(ErrAssignmentToConstVar, SeverityError)
	RegisterSeverity(ErrConstEvalHierarchicalName, SeverityError)
	RegisterSeverity(ErrRecursiveDefinition, SeverityError)
	RegisterSeverity(ErrTypeMismatch, SeverityError)
	RegisterSeverity(ErrInvalidCast, SeverityError)
	RegisterSeverity(ErrMultiDrivenNet, SeverityError)
	RegisterSeverity(ErrProceduralNetAssignment, SeverityError)
	RegisterSeverity(ErrAutomaticNonBlocking, SeverityError)
	RegisterSeverity(ErrUnconnectedDriveNet, SeverityWarning)
	RegisterSeverity(ErrInstanceDepthExceeded, SeverityError)
	RegisterSeverity(ErrGenerateStepsExceeded, SeverityError)
	RegisterSeverity(ErrConstexprDepthExceeded, SeverityError)
	RegisterSeverity(ErrConstexprStepsExceeded, SeverityError)
	RegisterSeverity(ErrDefParamStepsExceeded, SeverityError)
	RegisterSeverity(ErrMultipleDefaultClocking, SeverityError)
	RegisterSeverity(ErrMultipleGlobalClocking, SeverityError)
	RegisterSeverity(ErrMultipleDefaultDisable, SeverityError)
	RegisterSeverity(WarnUnusedOutOfBlockDecl, SeverityWarning)
	RegisterSeverity(WarnUnusedSymbol, SeverityWarning)
	RegisterSeverity(ErrCyclicResolution, SeverityError)
	RegisterSeverity(ErrDPIExportConflict, SeverityError)
	RegisterSeverity(NoteDeclaredHere, SeverityNote)
}
