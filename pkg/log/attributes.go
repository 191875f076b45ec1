// Package log defines standard attribute keys for regression operations.
//
// Using these keys keeps log records from the fitting core, the CLI and the
// persistence layer consistent, so they can be filtered and aggregated by
// field. Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "Regression"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "summary", "snapshot", "restore"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "dataset", "diagplot"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) n.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of raw feature columns.
	FeaturesKey = "data.features"

	// ParamsKey indicates the number of fitted parameters d, including
	// the intercept column when present.
	ParamsKey = "data.params"

	// DataSizeKey indicates a payload size in bytes.
	DataSizeKey = "data.size_bytes"

	// PathKey records a file path read or written.
	PathKey = "data.path"
)

// Fit Diagnostics
const (
	// RankKey records the numeric rank of the design matrix.
	RankKey = "fit.rank"

	// ConditionKey records the condition number of XᵀX.
	ConditionKey = "fit.condition"

	// DFKey records the residual degrees of freedom n-d.
	DFKey = "fit.df"

	// InterceptKey records whether an intercept column is fitted.
	InterceptKey = "fit.intercept"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"

	// FStatKey records the F statistic of the overall significance test.
	FStatKey = "metrics.f_stat"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "SINGULAR_MATRIX"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Remove collinear columns"
	SuggestionKey = "error.suggestion"

	// CodecKey records the snapshot compression codec.
	CodecKey = "snapshot.codec"
)

// Standard attribute value constants.
const (
	// Standard operations
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationSummary  = "summary"
	OperationSnapshot = "snapshot"
	OperationRestore  = "restore"

	// Standard phases
	PhaseTraining  = "training"
	PhaseInference = "inference"
	PhaseReporting = "reporting"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorDegenerateInput   = "DEGENERATE_INPUT"
)
