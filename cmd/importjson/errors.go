package main

import "errors"

var errConnect = errors.New("could not connect to MySQL")
