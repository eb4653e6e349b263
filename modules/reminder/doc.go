// Package reminder is the application module tying the HTTP surface to
// the delayed queue and the delivery router.
//
// A client submits a problem reminder with a delay in days; the module
// validates it, enqueues a job scheduled that many days out, and
// acknowledges with the job ID. When the job comes due, the worker-side
// handler renders the email body and hands it to the delivery router,
// which picks an outbound channel under quota.
package reminder
