// Package leads forwards captured leads to the external intake system.
//
// Lead submission is best-effort by contract: SubmitLead never returns
// a Go error. Transport failures and non-2xx responses are folded into
// the SubmitResult so a chatbot conversation can keep going no matter
// what the intake system does.
package leads
