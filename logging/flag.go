package logging

import "strconv"

// VerbosityFlag counts repeated -v flags
type VerbosityFlag int

func (v *VerbosityFlag) String() string { return strconv.Itoa(int(*v)) }

// Set increments on a bare -v and accepts an explicit count as -v=3
func (v *VerbosityFlag) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*v = VerbosityFlag(n)
	return nil
}

// IsBoolFlag lets -v be given without a value
func (v *VerbosityFlag) IsBoolFlag() bool { return true }
