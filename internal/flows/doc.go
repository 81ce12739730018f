// Package flows implements the step machines behind the lobby's modal
// windows: registration, activation, login, social login, password recovery
// and gold transfer.
//
// A flow is constructed for one modal instance and discarded when the modal
// closes. Flows never return raw transport errors to their caller. Every
// failure becomes either an *InlineError carrying the translated text shown
// next to the form, or a navigation to another modal. Timers owned by a flow
// (the registration redirect, resend cooldowns) belong to that instance and
// stop with Close.
package flows
