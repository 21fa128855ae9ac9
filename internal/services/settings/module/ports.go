package module

import dom "indexa/internal/services/settings/domain"

// Ports holds the ports exposed by the settings module
type Ports struct {
	Reader dom.ReaderPort
	Writer dom.WriterPort
}
