package sseannot

var ParseMaxMetric = parseMaxMetric
