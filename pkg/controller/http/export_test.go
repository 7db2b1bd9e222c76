package http

// VerifyAPIKey is exported for testing
var VerifyAPIKey = verifyAPIKey

// VerifyPostCallSignature is exported for testing
var VerifyPostCallSignature = verifyPostCallSignature
