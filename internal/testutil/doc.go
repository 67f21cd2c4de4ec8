// Package testutil holds helpers shared by the package tests: a thread-safe
// log buffer, a context carrying a test logger, temporary source trees and a
// fake tool chain that records how it was invoked.
package testutil
