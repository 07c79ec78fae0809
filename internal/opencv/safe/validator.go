package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	return nil
}

func ValidateBGR(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("operation %s requires an 8-bit 3-channel Mat, got type %d", operation, int(mat.Type()))
	}

	return nil
}

func ValidateGray(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("operation %s requires an 8-bit single-channel Mat, got type %d", operation, int(mat.Type()))
	}

	return nil
}

// OddKernel rounds k up to the next odd value of at least 1.
func OddKernel(k int) int {
	if k < 1 {
		return 1
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}
