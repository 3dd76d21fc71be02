package models

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

// Document is an uploaded file as handed over by the caller. The declared
// MIME type is trusted; content is never sniffed.
type Document struct {
	Filename string
	MIMEType string
	Data     []byte
}

// SupportedFormat describes one accepted upload type.
type SupportedFormat struct {
	Extension   string `json:"extension"`
	MIMEType    string `json:"mime_type"`
	Description string `json:"description"`
}

var SupportedFormats = []SupportedFormat{
	{Extension: ".pdf", MIMEType: MIMEPDF, Description: "PDF Document"},
	{Extension: ".docx", MIMEType: MIMEDOCX, Description: "Word Document"},
	{Extension: ".txt", MIMEType: MIMEText, Description: "Plain Text"},
}

// MIMETypeForExtension maps a file extension (with dot) to its declared type.
func MIMETypeForExtension(ext string) string {
	for _, f := range SupportedFormats {
		if f.Extension == ext {
			return f.MIMEType
		}
	}
	return ""
}
