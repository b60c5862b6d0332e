// Package jobs runs typesetting requests in the background.
//
// A Runner validates a request, records a PrintJob in a Store and renders it
// on its own goroutine under a render slot and a deadline. Progress is
// published on a Bus as sequenced events that subscribers can replay.
//
// A job is created in StatusProcessing and ends in exactly one of
// StatusCompleted or StatusFailed. There are no retries.
package jobs
