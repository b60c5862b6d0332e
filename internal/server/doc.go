// Package server exposes the print job API over HTTP.
//
// Routes:
//
//	GET    /healthcheck
//	GET    /api/fonts
//	POST   /api/projects/{projectID}/print-jobs
//	GET    /api/projects/{projectID}/print-jobs
//	GET    /api/print-jobs/{jobID}
//	DELETE /api/print-jobs/{jobID}
//	GET    /api/print-jobs/{jobID}/events   (websocket)
//	GET    /files/*
//
// Submissions are accepted as multipart uploads (a "manuscript" file part)
// or as JSON carrying the text inline or a URL to fetch it from. A job is
// created only for input that passed validation; the response is 202 with
// the processing job.
package server
