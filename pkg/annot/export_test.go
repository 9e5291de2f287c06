package annot

var OrderAgrees = orderAgrees
