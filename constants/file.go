package constants

// PDFSignature is the fixed leading byte signature of a PDF file.
const PDFSignature = "%PDF-"
