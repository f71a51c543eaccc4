package pkg

func Beta() {}
