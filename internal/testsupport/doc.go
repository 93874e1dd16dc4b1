// Package testsupport builds isolated configurations for package tests.
package testsupport
