package model

import (
	"fmt"
	"strconv"
)

type ID int

func (i ID) String() string {
	return fmt.Sprintf("%v", int(i))
}

func MustStringToID(id string) ID {
	r, err := strconv.ParseInt(id, 10, 32)
	if err != nil {
		panic(err)
	}
	return ID(r)
}
