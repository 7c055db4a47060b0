package log

var Setup = setup
