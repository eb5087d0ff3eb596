/*
Package file provides filesystem adapters: a Source that reads flows from YAML or
JSON files, and a Store that keeps conversations as JSON files.
*/
package file
