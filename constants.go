package equationapi

// Solve statuses mirror the HTTP codes the API replies with.
const (
	StatusOK         = 200
	StatusBadRequest = 400
)
