/*
Package base provides base data structures and functions for nmfdata.

The base data structures and functions include:

* Random Generator

* Error Taxonomy

* Matrix Helpers
*/
package base
