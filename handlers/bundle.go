package handlers

// HandlerBundle groups the handlers the router wires up.
type HandlerBundle struct {
	Verification *VerificationHandler
	Audit        *AuditHandler
}
