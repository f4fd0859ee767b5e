package constants

// Extraction backend names, listed in chain priority order.
const (
	BackendPDFCPU  = "pdfcpu"
	BackendPoppler = "pdftotext"
	BackendFitz    = "mupdf"
	BackendOCR     = "ocr"
)

// Image provider names, listed in chain priority order.
const (
	ProviderOpenAI        = "openai"
	ProviderStability     = "stability"
	ProviderLocalFallback = "local-fallback"
)

// Pipeline stage names as stored in the attempt history.
const (
	StageExtract  = "extract"
	StageGenerate = "generate"
)
