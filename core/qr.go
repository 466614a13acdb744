package core

// QRService is any service that can turn arbitrary string data into a
// QR code image file at the given path.
type QRService interface {
	Generate(data, filename string) error
}
