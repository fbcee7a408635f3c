package n2cmu

import "context"

// ParamLen queries the counts a parameter vector depends on and returns
// its length.
func (p *Coprocessor) ParamLen(ctx context.Context, param Param) (int, error) {
	size := 1
	for _, c := range paramInfos[param].counts {
		count, err := p.GetCount(ctx, c)
		if err != nil {
			return 0, err
		}
		size *= int(count)
	}
	return size, nil
}

// SetParam writes a parameter vector and returns the device status.
func (p *Coprocessor) SetParam(ctx context.Context, param Param, vals []float32) (bool, error) {
	size, err := p.ParamLen(ctx, param)
	if err != nil {
		return false, err
	}
	if err = checkLen(param.String(), vals, size); err != nil {
		return false, err
	}
	if err = p.send(param.SetCommand()); err != nil {
		return false, err
	}
	if err = p.Codec.WriteF32s(vals[:size]); err != nil {
		return false, err
	}
	return p.Codec.ReadStatus(ctx)
}

// GetParam reads a parameter vector into dst and returns the count of
// values read. The device sends no status for reads.
func (p *Coprocessor) GetParam(ctx context.Context, param Param, dst []float32) (int, error) {
	size, err := p.ParamLen(ctx, param)
	if err != nil {
		return 0, err
	}
	if err = checkLen(param.String(), dst, size); err != nil {
		return 0, err
	}
	if err = p.send(param.GetCommand()); err != nil {
		return 0, err
	}
	return size, p.Codec.ReadF32s(ctx, dst[:size])
}

// ReadParam is GetParam with a buffer allocated to the derived length.
func (p *Coprocessor) ReadParam(ctx context.Context, param Param) ([]float32, error) {
	size, err := p.ParamLen(ctx, param)
	if err != nil {
		return nil, err
	}
	vals := make([]float32, size)
	if err = p.send(param.GetCommand()); err != nil {
		return nil, err
	}
	if err = p.Codec.ReadF32s(ctx, vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// SetHiddenNeuron writes hidden neuron values.
func (p *Coprocessor) SetHiddenNeuron(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, HiddenNeuron, vals)
}

// SetOutputNeuron writes output neuron values.
func (p *Coprocessor) SetOutputNeuron(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, OutputNeuron, vals)
}

// SetHiddenWeights writes input x hidden weights.
func (p *Coprocessor) SetHiddenWeights(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, HiddenWeights, vals)
}

// SetOutputWeights writes hidden x output weights.
func (p *Coprocessor) SetOutputWeights(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, OutputWeights, vals)
}

// SetHiddenBias writes hidden biases.
func (p *Coprocessor) SetHiddenBias(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, HiddenBias, vals)
}

// SetOutputBias writes output biases.
func (p *Coprocessor) SetOutputBias(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, OutputBias, vals)
}

// SetHiddenGradient writes hidden gradients.
func (p *Coprocessor) SetHiddenGradient(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, HiddenGradient, vals)
}

// SetOutputGradient writes output gradients.
func (p *Coprocessor) SetOutputGradient(ctx context.Context, vals []float32) (bool, error) {
	return p.SetParam(ctx, OutputGradient, vals)
}

// GetHiddenNeuron reads hidden neuron values.
func (p *Coprocessor) GetHiddenNeuron(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, HiddenNeuron, dst)
}

// GetOutputNeuron reads output neuron values.
func (p *Coprocessor) GetOutputNeuron(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, OutputNeuron, dst)
}

// GetHiddenWeights reads input x hidden weights.
func (p *Coprocessor) GetHiddenWeights(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, HiddenWeights, dst)
}

// GetOutputWeights reads hidden x output weights.
func (p *Coprocessor) GetOutputWeights(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, OutputWeights, dst)
}

// GetHiddenBias reads hidden biases.
func (p *Coprocessor) GetHiddenBias(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, HiddenBias, dst)
}

// GetOutputBias reads output biases.
func (p *Coprocessor) GetOutputBias(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, OutputBias, dst)
}

// GetHiddenGradient reads hidden gradients.
func (p *Coprocessor) GetHiddenGradient(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, HiddenGradient, dst)
}

// GetOutputGradient reads output gradients.
func (p *Coprocessor) GetOutputGradient(ctx context.Context, dst []float32) (int, error) {
	return p.GetParam(ctx, OutputGradient, dst)
}
