package transport

// response is the JSON body shape for every /api reply. Only the fields
// relevant to a given status are populated; omitempty keeps the others
// out of the wire payload.
type response struct {
	Status    string  `json:"status"`
	OrderID   *uint64 `json:"order_id,omitempty"`
	Remaining string  `json:"remaining,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func successResponse(id uint64) response {
	return response{Status: "success", OrderID: &id}
}

func cancelSuccessResponse() response {
	return response{Status: "success"}
}

func partiallyFilledResponse(id uint64, remaining string) response {
	return response{Status: "partially_filled", OrderID: &id, Remaining: remaining}
}

func fullyFilledResponse() response {
	return response{Status: "fully_filled"}
}

func orderDataInvalidResponse() response {
	return response{Status: "order_data_invalid"}
}

func orderIDNotFoundResponse() response {
	return response{Status: "order_id_not_found"}
}

func failedResponse(err string) response {
	return response{Status: "failed", Error: err}
}
