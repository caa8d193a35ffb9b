package remote

type EmptyResponse struct {
}

type SendRequest struct {
	Payload []byte
}
