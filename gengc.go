// ABOUTME: Root package of the generational garbage collector module
// ABOUTME: Holds the module version and the package-level overview

// Package gengc is a generational copying garbage collector for a
// managed-object runtime, running over a simulated word-addressed heap.
//
// The collector itself lives in package gc. Package object defines the
// header and forwarding-marker encodings, package arena the backing memory
// and bump allocators, package graph heap snapshots and graph comparison,
// and package heapdump JSON heap fixtures. The gcstress command drives
// the collector with allocation-heavy workloads.
package gengc

// Version is the semantic version of the module
const Version = "0.1.0-dev"
