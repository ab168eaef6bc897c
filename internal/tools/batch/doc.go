// Package batch runs one Tasks operation over several task IDs.
//
// Tools that accept either a single ID or an array of IDs parse the argument
// with IDs, run the operation per ID with Run and report a Summary. A failed
// item does not stop the remaining ones.
package batch
