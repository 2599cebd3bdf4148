package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on inbound requests.
const AccessTokenHeaderName = "Authorization"

// QRCodePrefix is the first segment of every ticket QR payload. The full
// format is QRCodePrefix-{eventId}-{ticketId}, hyphen-delimited, both ids
// decimal integers without leading zeros.
const QRCodePrefix = "LINKT"
