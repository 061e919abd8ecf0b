package hoverpoint_test

import (
	"fmt"

	"github.com/kailas-cloud/hoverpoint"
)

func ExampleComputeTarget() {
	target, err := hoverpoint.ComputeTarget([][]float64{
		{52.00001, 13.00002, 45.3},
		{52.00002, 13.00050, 45.1},
		{52.00030, 13.00055, 45.4},
		{52.00029, 13.00007, 45.2},
	}, hoverpoint.WithUpDistance(10))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(target[0], target[1], target[2])
	// Output: 52.00015500024991 13.000284999895468 65.24995945952833
}
