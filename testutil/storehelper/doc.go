// Package storehelper creates SQL stores backed by throwaway databases for tests.
package storehelper
